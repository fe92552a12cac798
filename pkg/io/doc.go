// Package io writes and reads result documents.
//
// # Output files
//
// Every run writes its artifacts beside each other under one stem derived
// from the input name and the generation time:
//
//	results/contributors_20250131-142501.json
//	results/contributors_20250131-142501.svg
//
// [Export] creates the files with O_EXCL. If a file with the chosen stem
// already exists (two runs within the same second), an eight character
// random suffix is appended to the stem, so a previous result is never
// overwritten:
//
//	results/contributors_20250131-142501_3f9c2a1b.json
//
// Artifacts are passed in fully rendered. Export either writes all of them
// or removes what it created and returns an error.
//
// # JSON
//
// [WriteJSON] and [MarshalJSON] encode any value with two-space
// indentation. [ReadJSON] and [ImportJSON] decode a document back into a
// typed value:
//
//	doc, err := io.ImportJSON[pipeline.Document]("results/contributors_20250131-142501.json")
package io
