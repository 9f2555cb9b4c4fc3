// Package web は埋め込みフロントエンド（SPA）を保持する。
package web

import "embed"

//go:embed index.html app.js styles.css
var FS embed.FS
