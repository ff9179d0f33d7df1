// Package pageobject drives the dashboard sidebar and asserts that every
// navigation entry renders its screen.
//
// The helper is written against the small Page/Element interfaces below;
// internal/browser implements them over go-rod. Lookups are non-blocking:
// all waiting happens in the helper through internal/wait, so every locate
// and assert has one explicit, bounded timeout.
package pageobject

import (
	"context"

	"dashnav/internal/fixtures"
)

// Scope is anything elements can be searched under.
type Scope interface {
	// Find returns the first element matching selector, if any, without waiting.
	Find(ctx context.Context, selector string) (Element, bool, error)
	// FindText returns the first element matching selector whose visible
	// text contains text, if any, without waiting.
	FindText(ctx context.Context, selector, text string) (Element, bool, error)
}

// Element is a located DOM element.
type Element interface {
	Scope
	Click(ctx context.Context) error
}

// Page is the browser tab under test.
type Page interface {
	Scope
	Navigate(ctx context.Context, url string) error
	// Intercept replaces any previously registered stubs with stubs.
	Intercept(ctx context.Context, stubs []fixtures.Stub) error
}
