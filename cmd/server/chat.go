package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-gemchat/internal/client"
)

type chatOptions struct {
	serverURL      string
	token          string
	username       string
	password       string
	conversationID uint
	markdown       bool
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send a prompt to a running server and stream the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts, strings.Join(args, " "))
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.serverURL, "server", envOr("GEMCHAT_SERVER", "http://localhost:8080"), "server base URL")
	f.StringVar(&opts.token, "token", os.Getenv("GEMCHAT_TOKEN"), "bearer token (or log in with --username/--password)")
	f.StringVarP(&opts.username, "username", "u", "", "username to log in with")
	f.StringVarP(&opts.password, "password", "p", os.Getenv("GEMCHAT_PASSWORD"), "password to log in with")
	f.UintVarP(&opts.conversationID, "conversation", "c", 0, "continue an existing conversation")
	f.BoolVar(&opts.markdown, "markdown", false, "re-render the finished reply as Markdown")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runChat(cmd *cobra.Command, opts *chatOptions, prompt string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	c := client.New(opts.serverURL, client.WithToken(opts.token))
	if opts.username != "" {
		if err := c.Login(ctx, opts.username, opts.password); err != nil {
			return fmt.Errorf("log in: %w", err)
		}
	}
	if c.Token() == "" {
		return errors.New("no credentials: pass --token or --username/--password")
	}

	var conversationID *uint
	if opts.conversationID > 0 {
		conversationID = &opts.conversationID
	}

	// With --markdown the raw stream is discarded and only the final render is printed.
	var live io.Writer = out
	if opts.markdown {
		live = io.Discard
	}
	renderer := client.NewRenderer(live)

	res, err := c.StreamChat(ctx, prompt, conversationID, renderer)
	if err != nil && res == nil {
		return err
	}

	if opts.markdown && res.Text != "" {
		styled, rerr := glamour.Render(res.Text, "dark")
		if rerr != nil {
			fmt.Fprint(out, res.Text)
		} else {
			fmt.Fprint(out, styled)
		}
	}
	fmt.Fprintln(out)

	if res.Title != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "conversation %d: %s\n", res.ConversationID, res.Title)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "conversation %d\n", res.ConversationID)
	}
	return err
}
