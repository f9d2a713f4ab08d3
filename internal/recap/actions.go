package recap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/sof-extractor/pkg/recap"
)

// RecapAction parses a fixture recap from a file or stdin and prints
// the structured fields.
func RecapAction(c *cli.Context) error {
	var text []byte
	var err error

	switch {
	case c.IsSet("file"):
		text, err = os.ReadFile(c.String("file"))
	case c.NArg() > 0:
		text, err = os.ReadFile(c.Args().First())
	default:
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not read recap: %v\n", err)
		os.Exit(2)
	}

	data := recap.Extract(string(text))

	var out []byte
	if c.String("format") == "yaml" {
		out, err = yaml.Marshal(data)
	} else {
		out, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
