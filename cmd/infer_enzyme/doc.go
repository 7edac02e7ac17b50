// Package main runs a trained enzyme classifier over a tab separated file of
// sequences and prints the predicted classes of every task.
package main
