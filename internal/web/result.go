// Package web defines the value every route handler returns. A handler never
// writes to the response directly: it returns a Redirect, a Page or a Failure
// and the router's dispatcher renders it.
package web

import (
	"net/http"
	"net/url"
)

// Result is one of Redirect, Page or Failure.
type Result interface {
	result()
}

// Redirect sends the client to Location with a 302 and optional cookies.
type Redirect struct {
	Location string
	Cookies  []*http.Cookie
}

// Page renders Template with Data. Status defaults to 200.
type Page struct {
	Status   int
	Template string
	Data     any
	Cookies  []*http.Cookie
}

// Failure renders a status page. Message is shown to the client; Err is
// logged only and never rendered.
type Failure struct {
	Status  int
	Message string
	Err     error
}

func (*Redirect) result() {}
func (*Page) result()     {}
func (*Failure) result()  {}

// RedirectTo builds a Redirect carrying cookies.
func RedirectTo(location string, cookies ...*http.Cookie) *Redirect {
	return &Redirect{Location: location, Cookies: cookies}
}

// LoginRedirect builds the redirect to the login page that returns the user
// to redirectTo after signing in.
func LoginRedirect(loginPath, redirectTo string) *Redirect {
	q := url.Values{"redirectTo": {redirectTo}}
	return &Redirect{Location: loginPath + "?" + q.Encode()}
}

// Render builds a 200 page.
func Render(template string, data any) *Page {
	return &Page{Status: http.StatusOK, Template: template, Data: data}
}

// Fail builds a failure with a client-visible message.
func Fail(status int, message string) *Failure {
	return &Failure{Status: status, Message: message}
}

// Internal builds a 500 failure; err is logged, not shown.
func Internal(err error) *Failure {
	return &Failure{Status: http.StatusInternalServerError, Message: "Something went wrong", Err: err}
}
