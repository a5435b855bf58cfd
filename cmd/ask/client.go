package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

func newID() string {
	var b [7]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func runQuery(cmd *cobra.Command, args []string) error {
	conversation := chatID
	if conversation == "" {
		conversation = newID()
	}

	body := map[string]interface{}{
		"message": map[string]string{
			"messageId": newID(),
			"chatId":    conversation,
			"content":   strings.Join(args, " "),
		},
		"focusMode":        focusMode,
		"optimizationMode": optimizationMode,
		"history":          [][2]string{},
		"files":            fileIDs,
		"chatModel":        map[string]string{"provider": chatProvider, "name": chatModel},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := httpClient.Post(serverURL+"/api/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, gjson.GetBytes(raw, "message").String())
	}

	summary, err := renderStream(resp.Body, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed {
		return fmt.Errorf("answer failed")
	}
	color.New(color.Faint).Fprintf(cmd.OutOrStdout(), "\nchat %s, message %s\n", conversation, summary.MessageID)
	return nil
}

func getJSON(path string) ([]byte, error) {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, gjson.GetBytes(raw, "message").String())
	}
	return raw, nil
}

func runChats(cmd *cobra.Command, _ []string) error {
	raw, err := getJSON("/api/chats")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	gjson.GetBytes(raw, "data").ForEach(func(_, chat gjson.Result) bool {
		color.New(color.FgCyan).Fprintf(out, "%s", chat.Get("id").String())
		fmt.Fprintf(out, "  %s  (%s)\n", chat.Get("title").String(), chat.Get("focusMode").String())
		return true
	})
	return nil
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	raw, err := getJSON("/api/discover")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	gjson.ParseBytes(raw).ForEach(func(topic, items gjson.Result) bool {
		color.New(color.FgYellow, color.Bold).Fprintln(out, topic.String())
		items.ForEach(func(_, item gjson.Result) bool {
			fmt.Fprintf(out, "  %s\n    %s\n", item.Get("title").String(), item.Get("url").String())
			return true
		})
		return true
	})
	return nil
}

func runModels(cmd *cobra.Command, _ []string) error {
	raw, err := getJSON("/api/models")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, section := range []string{"chatModelProviders", "embeddingModelProviders"} {
		color.New(color.Bold).Fprintln(out, section)
		gjson.GetBytes(raw, section).ForEach(func(provider, models gjson.Result) bool {
			var names []string
			for _, m := range models.Array() {
				names = append(names, m.String())
			}
			fmt.Fprintf(out, "  %s: %s\n", provider.String(), strings.Join(names, ", "))
			return true
		})
	}
	return nil
}
