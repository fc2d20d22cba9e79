package user

// Credentials holds what the reserver needs to act on the user's behalf.
type Credentials struct {
	LoginID  string
	Password string

	TelegramToken  string
	TelegramChatID string
}

func (c Credentials) HasLogin() bool {
	return c.LoginID != "" && c.Password != ""
}

func (c Credentials) HasTelegram() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// Merge fills empty fields of c from other.
func (c Credentials) Merge(other Credentials) Credentials {
	if c.LoginID == "" {
		c.LoginID = other.LoginID
	}
	if c.Password == "" {
		c.Password = other.Password
	}
	if c.TelegramToken == "" {
		c.TelegramToken = other.TelegramToken
	}
	if c.TelegramChatID == "" {
		c.TelegramChatID = other.TelegramChatID
	}
	return c
}
