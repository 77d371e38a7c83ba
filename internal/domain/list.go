package domain

// ListItem is a single shopping list row. Item is both the value and the
// table's hash key, so adding an existing name overwrites it.
type ListItem struct {
	Item string `dynamodbav:"item"`
}

// TableSchema captures what is needed to recreate the list table after it has
// been dropped.
type TableSchema struct {
	TableName            string
	AttributeDefinitions []AttributeDefinition
	KeySchema            []KeySchemaElement
	OnDemand             bool
	ReadCapacityUnits    int64
	WriteCapacityUnits   int64
}

type AttributeDefinition struct {
	Name string
	Type string
}

type KeySchemaElement struct {
	Name    string
	KeyType string
}
