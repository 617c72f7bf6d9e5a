package model

// Dimension is a readiness dimension from the catalog. Weight scales the
// priority of gaps found in the dimension.
type Dimension struct {
	ID          string  `json:"id" bson:"_id,omitempty"`
	Key         string  `json:"key" bson:"key"`
	DisplayName string  `json:"displayName" bson:"displayName"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Weight      float64 `json:"weight" bson:"weight"`
	OrderIndex  int     `json:"orderIndex" bson:"orderIndex"`
	IsActive    bool    `json:"isActive" bson:"isActive"`
}
