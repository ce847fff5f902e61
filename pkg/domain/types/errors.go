package types

import "github.com/m-mizutani/goerr/v2"

// ErrTagFatal marks errors that must abort the whole run before any
// download is attempted, such as an uncreatable database directory.
// Everything else is converted into try-next-candidate signals inside
// the update use case.
var ErrTagFatal = goerr.NewTag("fatal")
