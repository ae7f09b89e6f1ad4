// Package serve exposes the chat pipeline over HTTP/JSON.
//
// The surface is small: a chat endpoint, a health endpoint, a session clear
// endpoint, and a root banner. Request history can be supplied inline or via
// a session identifier backed by the history store; inline history wins when
// both are present. Answered turns are appended to the session so follow-up
// questions carry context.
package serve
