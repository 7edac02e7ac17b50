// Package main trains the enzyme sequence classifier on a UniProt tab separated
// export. Batches are drawn by loss rank, so the examples the model handles
// worst are revisited more often, and the best weights are saved as lzw json.
package main
