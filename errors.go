package qprop

import "github.com/pkg/errors"

// ErrZeroStep is returned by Propagate when dt == 0.
var ErrZeroStep = errors.New("qprop: dt must be nonzero")

// ErrShapeMismatch is returned by Propagate when psi's length does not match
// the Workspace it is called with.
var ErrShapeMismatch = errors.New("qprop: vector length does not match workspace")

// ErrNotConverged is returned by Propagate when the restart loop exceeds
// Options.MaxRestarts without satisfying the relative-error criterion.
var ErrNotConverged = errors.New("qprop: exceeded maximum restarts without converging")
