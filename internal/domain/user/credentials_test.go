package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialsMerge(t *testing.T) {
	flags := Credentials{LoginID: "1234567890"}
	stored := Credentials{LoginID: "0000000000", Password: "pw", TelegramToken: "tok", TelegramChatID: "42"}

	got := flags.Merge(stored)
	require.Equal(t, Credentials{LoginID: "1234567890", Password: "pw", TelegramToken: "tok", TelegramChatID: "42"}, got)
	require.True(t, got.HasLogin())
	require.True(t, got.HasTelegram())

	require.False(t, Credentials{LoginID: "x"}.HasLogin())
	require.False(t, Credentials{TelegramToken: "t"}.HasTelegram())
}
