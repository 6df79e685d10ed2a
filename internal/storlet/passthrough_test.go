package storlet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crystal-SDS/filter-samples/internal/store"
)

func TestPassthrough(t *testing.T) {
	backend := store.NewMemory()
	p := NewPassthrough(backend)
	ctx := context.Background()

	res, err := p.Invoke(ctx, &Invocation{Op: OpPut, ObjectID: "o", Input: strings.NewReader("direct")})
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Bytes)

	var out bytes.Buffer
	res, err = p.Invoke(ctx, &Invocation{Op: OpGet, ObjectID: "o", Output: &out})
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, "direct", out.String())

	_, err = p.Invoke(ctx, &Invocation{Op: OpGet, ObjectID: "missing", Output: &out})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = p.Invoke(ctx, &Invocation{Op: "HEAD", ObjectID: "o"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
