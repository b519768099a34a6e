package store_test

import (
	"github.com/teashop/apiserver/internal/services"
	"github.com/teashop/apiserver/internal/store"
)

// Compile-time checks that the SQL repositories satisfy the service
// interfaces they are injected as.
var (
	_ services.ItemRepository = (*store.ItemRepository)(nil)
	_ services.UserRepository = (*store.UserRepository)(nil)
)
