// Package harness runs conversion scenarios against a type catalog.
//
// A scenario names a CUE catalog, picks the rule profile and lists
// checks. Every check runs against the same engine, so the cache and
// forward cells built by one step are reused by the next.
//
// # Scenario Format
//
//	name: tree_roundtrip
//	description: "Recursive records survive decode and encode"
//	catalog: catalog.cue
//	rules:
//	  floats: nan_str
//	steps:
//	  - check: roundtrip
//	    type: Tree
//	    input: {label: root, children: [{label: leaf}]}
//	    output: {label: root, children: [{label: leaf}]}
//	  - check: reject
//	    type: Point
//	    input: {x: 1}
//	    error: missing required field
//	  - check: inspect
//	    type: Color
//	    input: purple
//	    accepted: false
//	  - check: pattern
//	    type: Point
//	    pattern: {x: 0, y: 0}
//	  - check: ambiguity
//	    type: Shape
//	    threshold: potential
//	    ambiguous: false
//
// # Checks
//
//   - roundtrip: decode input, encode the result, compare with output
//     (input when output is absent)
//   - reject: decoding must fail, with a message containing error
//   - inspect: the encoded inspector's verdict must equal accepted
//   - pattern: the rendered pattern must equal pattern
//   - ambiguity: ambiguity at threshold must equal ambiguous, and the
//     first finding must sit at path when given
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/tree.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
