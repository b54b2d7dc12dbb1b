// Package fetch retrieves remote text: node lists, the category listing and
// rule bodies. Every failure is a *domain.FetchError carrying a stable code.
package fetch
