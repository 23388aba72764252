package fixer

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// PromptConfirmer asks for plan approval on the terminal. Anything other
// than an explicit yes is a denial.
type PromptConfirmer struct {
	in  *bufio.Reader
	out *os.File
}

// NewPromptConfirmer creates a confirmer over stdin/stdout.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Confirm shows the executable actions and reads a y/N answer.
func (c *PromptConfirmer) Confirm(plan entities.FixPlan) bool {
	fmt.Fprintf(c.out, "About to run %d action(s):\n", len(plan.Executable))
	for _, action := range plan.Executable {
		fmt.Fprintf(c.out, "  %s (in %s)\n", action.Command, action.WorkDir)
	}
	fmt.Fprint(c.out, "Proceed? [y/N]: ")

	answer, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
