package cache

import "github.com/mperativ/agentdir/pkg/pagination"

// Page is the page payload shape cached by GetPage.
type Page[T any] = pagination.Page[T]
