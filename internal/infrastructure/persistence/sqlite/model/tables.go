package model

// All lists every table in migration order.
func All() []any {
	return []any{
		&ContentTest{},
		&Component{},
		&Field{},
		&KV{},
	}
}
