// Package shell rewrites the <head> of the built storefront document for one page.
//
// The document is never parsed into a tree. Each rule finds its tags with an
// anchored pattern inside the head section and either replaces the first match
// (dropping duplicates) or inserts a fresh tag before </head>. Running the rules
// twice with the same tag set yields the same bytes as running them once.
package shell
