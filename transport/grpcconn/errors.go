// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import "errors"

var errNotRawBytes = errors.New("grpcconn: codec given a non-rawBytes message")
