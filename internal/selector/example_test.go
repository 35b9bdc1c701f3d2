package selector_test

import (
	"fmt"
	"path/filepath"

	"github.com/smarttorque/progsync/internal/selector"
)

func ExampleWorkcell() {
	root := filepath.Join("srv", "programs")

	fmt.Println(selector.Workcell(root, filepath.Join(root, "Line1", "archive", "M100.xlsx")))
	fmt.Println(selector.Workcell("", filepath.Join("exports", "Line2", "M200.xlsx")))
	fmt.Println(selector.ModelName(filepath.Join(root, "Line1", "M100.xlsx")))
	// Output:
	// Line1
	// Line2
	// M100
}
