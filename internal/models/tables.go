package models

// TableItem represents a table in a listing
type TableItem struct {
	Name string `json:"name" yaml:"name"`
}

// Entity is a table entity as decoded from its JSON representation. It
// always carries PartitionKey and RowKey.
type Entity map[string]interface{}

// PartitionKey returns the entity's partition key, or "".
func (e Entity) PartitionKey() string {
	key, _ := e["PartitionKey"].(string)
	return key
}

// RowKey returns the entity's row key, or "".
func (e Entity) RowKey() string {
	key, _ := e["RowKey"].(string)
	return key
}
