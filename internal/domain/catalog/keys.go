package catalog

import (
	"net/url"
	"strconv"
)

const (
	KeyProducts   = "products"
	KeyCategories = "categories"

	DefaultLimit = 20
)

func ProductKey(id int64) string {
	return "product_" + strconv.FormatInt(id, 10)
}

func CategoryKey(category string) string {
	return "category_" + category
}

func LimitKey(limit int) string {
	return "products_limit_" + strconv.Itoa(limit)
}

// Remote catalog paths.
const (
	PathProducts   = "/products"
	PathCategories = "/products/categories"
)

func ProductPath(id int64) string {
	return PathProducts + "/" + strconv.FormatInt(id, 10)
}

func CategoryPath(category string) string {
	return PathProducts + "/category/" + url.PathEscape(category)
}

func LimitPath(limit int) string {
	return PathProducts + "?limit=" + strconv.Itoa(limit)
}
