// Package spath selects values out of semi-structured documents with
// JSONPath-style query expressions (RFC 9535 semantics).
//
// A document is anything satisfying the Value interface; the json and yaml
// subpackages provide ready-made adapters. Queries are compiled once with
// Parse and may then run concurrently against any number of documents:
//
//	q, err := spath.Parse("$.store.book[?@.price < 10].title")
//	if err != nil {
//		log.Fatal(err)
//	}
//	doc, err := json.Parse(data)
//	if err != nil {
//		log.Fatal(err)
//	}
//	nodes, err := q.Select(doc)
//
// Each result carries the selected value together with the normalized path
// locating it, e.g. $['store']['book'][0]['title'].
//
// Filter functions (length, count, match, search, value) are resolved at
// parse time against a Registry; hosts add their own functions to a clone
// of DefaultRegistry and pass it with WithRegistry.
package spath
