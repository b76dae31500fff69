// Package ai wraps the generative model used to group photos into moments
// and to paint page backgrounds.
package ai

import "errors"

// ErrUpstreamUnavailable covers every way the model can fail us: no API key,
// transport errors, timeouts and unusable output. Callers recover from it.
var ErrUpstreamUnavailable = errors.New("ai upstream unavailable")

// Image is one photo handed to the classifier, in batch order.
type Image struct {
	Data []byte
	MIME string
}

// Group is one suggested moment. PhotoIndexes refer to positions in the
// batch passed to Classify and are not validated here.
type Group struct {
	PhotoIndexes []int  `json:"photoIndexes"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Theme        string `json:"theme"`
}
