package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/eiken/internal/assets"
)

// WriteStudyGuide prints the study guide with headings in bold.
func WriteStudyGuide(w io.Writer) error {
	bold := color.New(color.Bold)
	scanner := bufio.NewScanner(strings.NewReader(assets.StudyGuide()))
	for scanner.Scan() {
		line := scanner.Text()
		if heading, ok := strings.CutPrefix(line, "#"); ok {
			if _, err := bold.Fprintln(w, strings.TrimLeft(heading, "# ")); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}
