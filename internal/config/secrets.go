package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TelegramCredentials returns the bot token and chat id, preferring values set
// directly in the config over the legacy secrets file.
func (c *ContactConfig) TelegramCredentials() (token, chatID string, err error) {
	token, chatID = c.BotToken, c.ChatID
	if token != "" && chatID != "" {
		return token, chatID, nil
	}
	if c.SecretsFile == "" {
		return token, chatID, nil
	}
	fileToken, fileChat, err := ReadSecretsFile(c.SecretsFile)
	if err != nil {
		return token, chatID, err
	}
	if token == "" {
		token = fileToken
	}
	if chatID == "" {
		chatID = fileChat
	}
	return token, chatID, nil
}

// ReadSecretsFile scans a PHP array file for the BOT_TOKEN and CHAT_ID entries:
//
//	'BOT_TOKEN' => '123:abc',
//	'CHAT_ID' => -1001234,
func ReadSecretsFile(path string) (token, chatID string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open secrets file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, "=>")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimRight(strings.TrimSpace(value), ","), `'" `)
		switch {
		case strings.Contains(key, "BOT_TOKEN"):
			token = value
		case strings.Contains(key, "CHAT_ID"):
			chatID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read secrets file: %w", err)
	}
	return token, chatID, nil
}
