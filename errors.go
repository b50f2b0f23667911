package ganblr

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument = errors.New("ganblr: invalid argument")
	ErrNotFitted       = errors.New("ganblr: model is not fitted")
)
