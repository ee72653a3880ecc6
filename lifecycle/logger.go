package lifecycle

import "oss.nandlabs.io/regular/l3"

var logger = l3.Get()
