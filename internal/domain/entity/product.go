package entity

// ProductType clasifica lo que se vende o traslada. Solo inventory y drink llevan libro de stock.
type ProductType string

const (
	ProductTypeInventory ProductType = "inventory"
	ProductTypeDrink     ProductType = "drink"
	ProductTypeExtra     ProductType = "extra"
	ProductTypeService   ProductType = "service"
	ProductTypeRoom      ProductType = "room"
	ProductTypeGame      ProductType = "game"
)

// IsInventoryBacked indica si el producto descuenta del libro de stock al despacharse.
func (t ProductType) IsInventoryBacked() bool {
	return t == ProductTypeInventory || t == ProductTypeDrink
}

// Valid informa si el tipo es conocido.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeInventory, ProductTypeDrink, ProductTypeExtra,
		ProductTypeService, ProductTypeRoom, ProductTypeGame:
		return true
	}
	return false
}
