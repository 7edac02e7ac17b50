package trainer

import "github.com/neurlang/enzyme/net/feedforward"

// Resume loads the network saved at dstmodel when resume is set. It returns
// nil when there is nothing to resume, printing why loading failed.
func Resume(resume *bool, dstmodel *string, rate float64) *feedforward.FeedforwardNetwork {
	if resume == nil || !*resume || dstmodel == nil || *dstmodel == "" {
		return nil
	}
	net, err := feedforward.ReadCompressedWeightsFromFile(*dstmodel, rate)
	if err != nil {
		println(err.Error())
		return nil
	}
	return net
}
