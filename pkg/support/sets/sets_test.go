// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	removed := Make[string](10)
	assert.Len(t, removed, 0)

	removed.Insert("buf0", "buf2")
	assert.True(t, removed.Has("buf0"))
	assert.False(t, removed.Has("buf1"))

	kernelRemoved := MakeWith("buf1", "buf2")
	removed.Union(kernelRemoved)
	assert.Equal(t, []string{"buf0", "buf1", "buf2"}, Sorted(removed))

	onlyKernel := kernelRemoved.Sub(MakeWith("buf2"))
	assert.Equal(t, []string{"buf1"}, Sorted(onlyKernel))
	assert.Empty(t, Sorted(Make[int]()))
}
