// Package dataset loads quad datasets from CUE files.
//
// A dataset file declares one top-level "dataset" field:
//
//	dataset: {
//		name: "people"
//		quads: [
//			{s: "<http://ex/alice>", p: "<http://ex/age>", o: 30},
//			{s: "<http://ex/alice>", p: "<http://ex/name>", o: "\"Alice\"", g: "<http://ex/g1>"},
//		]
//	}
//
// Files are unified with an embedded schema before decoding, so a missing
// position, an unknown field or a wrong type is reported with its CUE
// source position. Term strings use the same SSE syntax as algebra
// plans. Subjects, predicates and graph names must be IRIs; objects may be
// any concrete term.
package dataset
