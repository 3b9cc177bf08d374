package tokens

import (
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plot describes one pre-rendered chart an article can embed with
// {{plot:ID}}.
type Plot struct {
	Title       string `yaml:"title"`
	Filename    string `yaml:"filename"`
	Description string `yaml:"description"`
}

// Plots is the plot metadata keyed by plot ID.
type Plots map[string]Plot

var plotPattern = regexp.MustCompile(`\{\{plot:([\w-]+)\}\}`)

// LoadPlots reads plot metadata. The file is usually JSON written by the plot
// scripts; YAML is accepted too since the decoder reads both.
// A missing file yields an empty set and an error wrapping os.ErrNotExist.
func LoadPlots(file string) (Plots, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Plots{}, err
		}
		return nil, fmt.Errorf("could not read plot metadata %s: %w", file, err)
	}
	plots := Plots{}
	if err := yaml.Unmarshal(data, &plots); err != nil {
		return nil, fmt.Errorf("could not parse plot metadata %s: %w", file, err)
	}
	return plots, nil
}

// Expand replaces every {{plot:ID}} in s with the chart embed. urlPrefix is
// where the plot files are served from, relative to the page or absolute.
// Unknown IDs become a visible error block.
func (p Plots) Expand(s, urlPrefix string) string {
	return plotPattern.ReplaceAllStringFunc(s, func(m string) string {
		id := plotPattern.FindStringSubmatch(m)[1]
		plot, ok := p[id]
		if !ok {
			return fmt.Sprintf(`<div class="error">Plot %s not found</div>`, html.EscapeString(id))
		}
		src := plot.Filename
		if urlPrefix != "" {
			src = strings.TrimRight(urlPrefix, "/") + "/" + plot.Filename
		}
		return fmt.Sprintf("<div class=\"plotly-chart\">\n<iframe src=\"%s\" width=\"100%%\" height=\"500\" frameborder=\"0\"></iframe>\n<p class=\"caption\">%s</p>\n</div>",
			html.EscapeString(src), html.EscapeString(plot.Description))
	})
}
