/*
Package flow parses and validates Espalier flow documents.

A flow document is a small markdown dialect: a header line naming the flow,
followed by block sections separated by "---" lines. Each section declares a
typed block (message, menu, or mes-menu) as a YAML mapping. Parse runs the
whole pipeline — split, per-block parse, graph validation — and returns an
immutable Flow or an ErrorList; there is no partially valid graph.

	f, err := flow.Parse(src)
	if err != nil {
		var list flow.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				fmt.Println(e.Code, e.Message)
			}
		}
	}
*/
package flow
