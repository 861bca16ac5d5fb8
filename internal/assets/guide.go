package assets

import (
	_ "embed"
)

//go:embed templates/study-guide.md
var studyGuide string

// StudyGuide returns the grade-4 study guide as markdown.
func StudyGuide() string {
	return studyGuide
}
