package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ogulcanaydogan/vault-capacity-guardian/pkg/model"
	"gopkg.in/yaml.v3"
)

// writeOutcome renders an outcome as text, json or yaml.
func writeOutcome(w io.Writer, o *model.Outcome, format string) error {
	switch format {
	case "", "text":
		if subject, body, ok := o.SinkMessage(); ok {
			_, err := fmt.Fprintf(w, "%s\n\n%s", subject, body)
			return err
		}
		_, err := fmt.Fprintln(w, o.Message)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(o); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
