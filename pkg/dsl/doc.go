// Package dsl parses the erdsync diagram language into a [diagram.Model] and
// writes node positions back into the text.
//
// # Language
//
// One statement per line. Blank lines and lines starting with // are ignored.
//
//	ent <LABEL> [ (x, y) ]
//	weak_ent <LABEL> [ (x, y) ]
//	rel <LABEL> [ (x, y) ]
//	ident_rel <LABEL> [ (x, y) ]
//	att <LABEL> [ -> <OWNER_ID> ] [ (x, y) ]
//	key_att <LABEL> [ -> <OWNER_ID> ] [ (x, y) ]
//	derived_att <LABEL> [ -> <OWNER_ID> ] [ (x, y) ]
//	multivalued_attribute <LABEL> [ -> <OWNER_ID> ] [ (x, y) ]
//	spec <DISCRIMINATOR> [ -> <SUPERCLASS_ID> ] [ (x, y) ]
//	union [<DISCRIMINATOR>] [ -> <SUPERCLASS_ID> ] [ (x, y) ]
//	link <SRC_ID> <DST_ID> [ "<LABEL>" ] [ [total] | [double] ]
//
// Coordinates may appear anywhere after the keyword and are stripped before
// the rest of the line is tokenized.
//
// # Parsing
//
// [Parse] never fails. Lines it cannot use are reported in
// [Result.Ignored] and contribute nothing to the model:
//
//	res := dsl.Parse(dsl.NewDocument(text), dsl.Options{})
//	for _, n := range res.Model.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
//
// Node ids are unique within one parse. Attribute ids always carry their line
// index (Name_3) because the same attribute label recurs across owners; other
// labels get the suffix only when they collide with an id already taken.
//
// # Write-back
//
// [WriteBack] replaces the coordinate suffix of exactly one line and leaves
// every other line untouched. An out-of-range line index is a no-op:
//
//	doc, ok := dsl.WriteBack(doc, node.OriginLine, 99, 5)
package dsl
