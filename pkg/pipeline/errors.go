package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/matzehuels/rsolver/pkg/admittance"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/render"
)

// ErrVerify is returned when a reduction disagrees with the star-mesh
// reference computed on the original network.
var ErrVerify = errors.New("reduction does not match reference")

// Classify converts err into a coded [rerrors.Error]. Errors that already
// carry a code are returned unchanged; unrecognised errors become
// INTERNAL_ERROR.
func Classify(err error) error {
	return classify(err, rerrors.ErrCodeInternal)
}

func classify(err error, fallback rerrors.Code) error {
	if err == nil {
		return nil
	}
	var coded *rerrors.Error
	if errors.As(err, &coded) {
		return err
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return rerrors.Wrap(rerrors.ErrCodeFileNotFound, err, "netlist not found")
	case errors.Is(err, netlist.ErrUnknownFormat), errors.Is(err, render.ErrUnknownFormat):
		return rerrors.Wrap(rerrors.ErrCodeInvalidFormat, err, "unsupported format")
	case errors.Is(err, netlist.ErrInvalid),
		errors.Is(err, network.ErrSelfLoop),
		errors.Is(err, network.ErrInvalidResistance):
		return rerrors.Wrap(rerrors.ErrCodeInvalidNetlist, err, "invalid netlist")
	case errors.Is(err, reduce.ErrNotReducible):
		return rerrors.Wrap(rerrors.ErrCodeNotReducible, err, "network cannot be reduced")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return rerrors.Wrap(rerrors.ErrCodeTimeout, err, "solve interrupted")
	case errors.Is(err, ErrVerify),
		errors.Is(err, admittance.ErrUnreduced),
		errors.Is(err, network.ErrNotEndpoint),
		errors.Is(err, network.ErrNotInAdjacency),
		errors.Is(err, network.ErrCorruptAdjacency),
		errors.Is(err, reduce.ErrMalformedWye),
		errors.Is(err, reduce.ErrMalformedDelta):
		return rerrors.Wrap(rerrors.ErrCodeInternalInvariant, err, "internal invariant violated")
	}
	return rerrors.Wrap(fallback, err, "%s", fallbackMessage(fallback))
}

func fallbackMessage(code rerrors.Code) string {
	switch code {
	case rerrors.ErrCodeInvalidNetlist:
		return "invalid netlist"
	case rerrors.ErrCodeInvalidInput:
		return "invalid input"
	}
	return "unexpected failure"
}
