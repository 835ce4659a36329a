package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenResolver_Order(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	cliCalls := 0
	cli := func(context.Context) (string, error) {
		cliCalls++
		return "from-cli", nil
	}

	tok, err := TokenResolver{Explicit: "explicit", CLI: cli}.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "explicit", tok)

	tok, err = TokenResolver{CLI: cli}.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-cli", tok)

	require.NoError(t, StoreToken("from-keyring"))
	tok, err = TokenResolver{CLI: cli}.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)
	assert.Equal(t, 1, cliCalls)

	require.NoError(t, ForgetToken())
	require.NoError(t, ForgetToken())
}

func TestTokenResolver_CLIFailure(t *testing.T) {
	keyring.MockInit()
	_, err := TokenResolver{CLI: func(context.Context) (string, error) {
		return "", errors.New("not logged in")
	}}.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrMissingToken)
}
