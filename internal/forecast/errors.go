package forecast

import "errors"

// ErrInsufficientData is returned when fewer than MinUsableObservations
// historical price points are available. The forecaster must not silently
// predict from less; the caller surfaces this as a client-visible failure.
var ErrInsufficientData = errors.New("forecast: insufficient historical data")

// MinUsableObservations is the minimum number of non-null price points needed
// before any feature extraction happens.
const MinUsableObservations = 3
