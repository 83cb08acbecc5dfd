// Package harness runs join classification scenarios.
//
// A scenario is a YAML file listing join sites and the verdict each should
// get. When the scenario names a dataset, every case is also evaluated both
// as a relational join and as a substitution sequence so that accepted
// joins are checked against real solutions.
//
// # Scenario Format
//
//	name: optional-scope
//	description: "Optional variables on the right block linearization"
//	dataset: ../datasets/people.cue   # optional, relative to this file
//	pass_id: scope-pass               # optional, fixed rewrite pass ID
//	cases:
//	  - name: right-optional
//	    left: (bgp (triple ?s <http://ex/age> ?a))
//	    right: (leftjoin (bgp (triple ?s <http://ex/knows> ?o)) (bgp (triple ?o <http://ex/age> ?a)))
//	    expect: false
//	    rule: optional      # optional, the rejecting rule
//	    same: false         # optional, requires a dataset
//
// # Checks
//
// Each case is checked for:
//   - the verdict (expect)
//   - the rejecting rule, when given
//   - agreement of the two evaluation strategies for accepted joins, when a
//     dataset is present
//   - the declared differential outcome (same), when given
//
// # Golden Traces
//
// Golden renders a result as text: the decision steps, the rewritten plan
// and the differential outcome of every case. Rewrites use a constant pass
// ID so the output is identical across runs. Golden files live next to the
// scenarios in a golden/ directory (see GoldenPath).
package harness
