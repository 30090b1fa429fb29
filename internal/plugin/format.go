package plugin

import "fmt"

const fieldLabelWidth = 35

// TitleFormat renders a result block heading.
func TitleFormat(title string) string {
	return fmt.Sprintf("  * %s:", title)
}

// FieldFormat renders one label/value line under a heading.
func FieldFormat(label, value string) string {
	return fmt.Sprintf("      %-*s%s", fieldLabelWidth, label, value)
}

// BoolLiteral renders booleans the way structured output has always spelled
// them.
func BoolLiteral(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
