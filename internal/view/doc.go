// Package view renders the blog-desk pages and the fragments patched into
// them over datastar SSE. The .templ files are the source; run templ generate
// after editing them.
package view
