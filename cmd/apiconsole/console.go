package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/console"
)

func newProbeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Test the connection and probe which HTTP methods the API accepts",
		Long: `Send a GET to check the API is reachable and returns JSON, then send one
bodiless request per method (GET, POST, PUT, DELETE, PATCH). A method is
supported when the API answers it with a 2xx status.

POST, PUT, DELETE and PATCH are sent to the live endpoint and may change data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := session.TestConnection(cmd.Context()); err != nil {
				return reported(err)
			}
			return printMethods(cmd.OutOrStdout(), opts.format(), session.Methods())
		},
	}
}

func newFetchCmd(opts *options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Connect to the API and show its data",
		Long: `GET the API URL and render the JSON response. Arrays become one row per
element, a single object becomes one row and any other value becomes one row
with a "value" column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := session.Connect(cmd.Context()); err != nil {
				return reported(err)
			}
			if raw {
				return printJSON(cmd.OutOrStdout(), session.Raw())
			}
			return printRows(cmd.OutOrStdout(), opts.format(), session.Rows())
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the response body as received instead of rows")
	return cmd
}

func newCreateCmd(opts *options) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "POST a new record built from --field values",
		Example: `  apiconsole create --url https://api.example.com/items \
    --field name=lamp --field watts=60:number`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := parseFields(specs)
			if err != nil {
				return err
			}

			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := session.Connect(cmd.Context()); err != nil {
				return reported(err)
			}
			if err := session.Create(cmd.Context(), fields); err != nil {
				return reported(err)
			}
			return printRows(cmd.OutOrStdout(), opts.format(), session.Rows())
		},
	}

	addFieldFlag(cmd, &specs)
	return cmd
}

func newUpdateCmd(opts *options) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "update INDEX",
		Short: "PUT the row at INDEX with --field edits applied",
		Long: `Fetch the data, merge the --field edits into the row at INDEX and PUT the
whole row. The request goes to URL/{id} when the row has an id, otherwise to
URL/{INDEX}. An empty value clears a field.`,
		Example: `  apiconsole update 0 --field name=desk-lamp`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			edits, err := parseFields(specs)
			if err != nil {
				return err
			}

			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := session.Connect(cmd.Context()); err != nil {
				return reported(err)
			}
			if err := session.Update(cmd.Context(), index, edits); err != nil {
				return reported(err)
			}
			return printRows(cmd.OutOrStdout(), opts.format(), session.Rows())
		},
	}

	addFieldFlag(cmd, &specs)
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete INDEX",
		Short: "DELETE the row at INDEX",
		Long: `Fetch the data and send DELETE for the row at INDEX, to URL/{id} when the
row has an id, otherwise to URL/{INDEX}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			session, _, err := opts.newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := session.Connect(cmd.Context()); err != nil {
				return reported(err)
			}
			if err := session.Delete(cmd.Context(), index); err != nil {
				return reported(err)
			}
			return printRows(cmd.OutOrStdout(), opts.format(), session.Rows())
		},
	}
}

func addFieldFlag(cmd *cobra.Command, specs *[]string) {
	cmd.Flags().StringArrayVarP(specs, "field", "f", nil, "Field as key=value or key=value:number (repeatable)")
}

// parseFields parses key=value[:type] specs in order.
func parseFields(specs []string) ([]console.Field, error) {
	fields := make([]console.Field, 0, len(specs))
	for _, spec := range specs {
		f, err := console.ParseField(spec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid row index %q", s)
	}
	return index, nil
}
