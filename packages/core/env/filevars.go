package env

import (
	"bufio"
	"regexp"
	"strings"
)

var fileVariablePattern = regexp.MustCompile(`^@([A-Za-z_][A-Za-z0-9_.-]*)\s*=\s*(.*)$`)

// FileVariable is an `@name = value` declaration of a request file.
type FileVariable struct {
	Name  string
	Value string
	Line  int
}

// ParseFileVariables returns the variable declarations of a request file in
// source order. Values are kept raw; placeholders inside them resolve at
// substitution time.
func ParseFileVariables(text string) []*FileVariable {
	var vars []*FileVariable
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		m := fileVariablePattern.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		vars = append(vars, &FileVariable{
			Name:  m[1],
			Value: strings.TrimSpace(m[2]),
			Line:  line,
		})
	}
	return vars
}

// FileVariables collects the declarations of text into a map. Later
// declarations of the same name win.
func FileVariables(text string) map[string]string {
	decls := ParseFileVariables(text)
	vars := make(map[string]string, len(decls))
	for _, v := range decls {
		vars[v.Name] = v.Value
	}
	return vars
}
