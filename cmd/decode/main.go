// Command decode runs a single SWIM message through the same dispatcher the
// service uses and prints the normalized record. It is meant for checking
// captured payloads without a broker or a database.
//
// Usage:
//
//	go run ./cmd/decode --destination met-report.wsss report.txt
//	cat flight.xml | go run ./cmd/decode -d fixm.fpl --output yaml
//	go run ./cmd/decode route /topic/iwxxm/metar
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/dispatch"
	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		destination string
		messageID   string
		receivedAt  string
		output      string
	)

	root := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode one SWIM message into its storage record",
		Long: `decode reads a payload from a file or stdin, routes it by destination tag,
and prints the record that would be written to storage.`,
		Example: `  decode -d met-report.wsss report.txt
  decode -d fixm.dep --output yaml < departure.xml`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if destination == "" {
				return fmt.Errorf("--destination is required")
			}
			payload, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			msg := domain.RawMessage{
				Payload:       payload,
				Destination:   destination,
				CorrelationID: messageID,
			}
			if receivedAt != "" {
				t, err := time.Parse(time.RFC3339, receivedAt)
				if err != nil {
					return fmt.Errorf("--received-at: %w", err)
				}
				msg.ReceivedAt = t
			}

			rec, err := dispatch.New(dispatch.DefaultTables()).Transform(cmd.Context(), msg)
			if err != nil {
				return err
			}

			successColor.Fprintf(cmd.ErrOrStderr(), "✓ %s/%s -> %s\n", rec.Family, rec.Variant, rec.Table)
			return render(cmd.OutOrStdout(), rec.Item, output)
		},
	}

	root.Flags().StringVarP(&destination, "destination", "d", "", "destination tag used for routing")
	root.Flags().StringVar(&messageID, "id", "", "message id merged as messageID")
	root.Flags().StringVar(&receivedAt, "received-at", "", "ingest time in RFC 3339 (default: now)")
	root.Flags().StringVarP(&output, "output", "o", "json", "output format: json, yaml")

	root.AddCommand(newRouteCmd())
	return root
}

func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <destination>...",
		Short: "Show which decoder a destination tag resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := dispatch.New(dispatch.DefaultTables())
			for _, tag := range args {
				family, variant, err := d.Route(tag)
				if err != nil {
					errorColor.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", tag, err)
					continue
				}
				infoColor.Fprintf(cmd.OutOrStdout(), "%s -> %s/%s\n", tag, family, variant)
			}
			return nil
		},
	}
}

func readPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func render(w io.Writer, tree domain.Tree, format string) error {
	switch strings.ToLower(format) {
	case "json":
		b, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlNode(tree)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// yamlNode converts a tree into a YAML node so that key order survives encoding.
func yamlNode(t domain.Tree) *yaml.Node {
	switch t.Kind() {
	case domain.KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range t.Fields() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				yamlNode(f.Value))
		}
		return n
	case domain.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t.Items() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.Text()}
	}
}
