// Package trainer provides the importance-weighted batch training loop. Each
// epoch ranks the training examples by loss, draws mini-batches biased by rank
// and refreshes the stalest losses on a fixed schedule while the model trains.
package trainer
