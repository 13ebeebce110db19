package dsl_test

import (
	"fmt"

	"github.com/matzehuels/erdsync/pkg/dsl"
)

func ExampleParseString() {
	res := dsl.ParseString(`ent EMPLOYEE (0, 0)
rel WORKS_ON (120, 0)
link EMPLOYEE WORKS_ON "N" [total]
table PROJECT`, dsl.Options{})

	for _, n := range res.Model.Nodes {
		fmt.Println(n.ID, n.Kind, n.X, n.Y)
	}
	for _, l := range res.Model.Links {
		fmt.Println(l.Source, l.Target, l.Label, l.Style)
	}
	for _, ig := range res.Ignored {
		fmt.Println("ignored line", ig.Line, ig.Reason)
	}
	// Output:
	// EMPLOYEE entity 0 0
	// WORKS_ON relationship 120 0
	// EMPLOYEE WORKS_ON N double
	// ignored line 3 unknown command
}

func ExampleWriteBack() {
	doc := dsl.NewDocument("ent A (10, 20)\nent B")

	doc, ok := dsl.WriteBack(doc, 0, 99, 5)
	fmt.Println(ok)
	fmt.Println(doc.String())

	_, ok = dsl.WriteBack(doc, 7, 0, 0)
	fmt.Println(ok)
	// Output:
	// true
	// ent A (99, 5)
	// ent B
	// false
}

func ExampleSetCoords() {
	fmt.Println(dsl.SetCoords("att (3, 4) Name -> A", 10.6, -2.2))
	// Output:
	// att  Name -> A (11, -2)
}
