/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Command rejections. Every one of these is reported back to the
// originating client as an error event; none of them mutate session
// state or affect other clients.
var (
	errUnauthorized  = errors.New("invalid API key")
	errNotFound      = errors.New("session not found")
	errForbidden     = errors.New("role not permitted for this command")
	errInvalidPhase  = errors.New("command not valid in current game state")
	errLimitExceeded = errors.New("no passes remaining")
	errBadRequest    = errors.New("malformed message")

	// Sent when a command arrives on a channel with no claimed role.
	errUnauthenticated = errors.New("no role claimed for this connection")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
