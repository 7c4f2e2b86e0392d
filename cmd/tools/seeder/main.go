// Seeder applies db/schema.sql and loads the demo floor plan, menu, and
// promotions. Safe to run repeatedly; everything upserts by name.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	applySchema(db)
	seedTables(db)
	categories := seedCategories(db)
	items := seedMenuItems(db, categories)
	seedPromotions(db, categories, items)

	log.Println("Seeding completed successfully!")
}

func applySchema(db *sql.DB) {
	path := os.Getenv("SCHEMA_PATH")
	if path == "" {
		path = "db/schema.sql"
	}
	ddl, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read schema %s: %v", path, err)
	}
	if _, err := db.Exec(string(ddl)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("Schema applied")
}

func seedTables(db *sql.DB) {
	fmt.Println("Seeding Tables...")
	for i := 1; i <= 10; i++ {
		seats := 2
		if i > 4 {
			seats = 4
		}
		if i > 8 {
			seats = 6
		}
		_, err := db.Exec(`
			INSERT INTO tables (name, seats) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING;
		`, fmt.Sprintf("T%d", i), seats)
		if err != nil {
			log.Printf("Failed to seed table T%d: %v", i, err)
		}
	}
}

func seedCategories(db *sql.DB) map[string]string {
	categories := []struct {
		Name      string
		SortOrder int
	}{
		{"Appetizers", 1},
		{"Mains", 2},
		{"Sides", 3},
		{"Beverages", 4},
		{"Ice Cream", 5},
		{"Frozen Yogurt", 6},
	}

	fmt.Println("Seeding Categories...")
	ids := make(map[string]string, len(categories))
	for _, c := range categories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name, sort_order) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET sort_order = EXCLUDED.sort_order
			RETURNING id;
		`, c.Name, c.SortOrder).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed category %s: %v", c.Name, err)
		}
		ids[c.Name] = id
	}
	return ids
}

func seedMenuItems(db *sql.DB, categories map[string]string) map[string]string {
	items := []struct {
		Name        string
		Price       int64
		Category    string
		Description string
	}{
		{"Bruschetta", 999, "Appetizers", "Toasted bread with tomato & basil"},
		{"Calamari", 1299, "Appetizers", "Crispy fried squid rings"},
		{"Garlic Bread", 699, "Appetizers", "Toasted with garlic butter"},
		{"Caesar Salad", 1099, "Appetizers", "Romaine, croutons, parmesan"},
		{"Soup of the Day", 799, "Appetizers", "Ask your server"},
		{"Ribeye Steak", 3499, "Mains", "12oz USDA Choice, grilled"},
		{"Grilled Salmon", 2899, "Mains", "Atlantic salmon, lemon herb"},
		{"Chicken Parmesan", 2299, "Mains", "Breaded chicken, marinara, mozzarella"},
		{"Pasta Carbonara", 1899, "Mains", "Spaghetti, pancetta, egg, pecorino"},
		{"Veggie Burger", 1699, "Mains", "House-made black bean patty"},
		{"Fish & Chips", 1999, "Mains", "Beer-battered cod, tartar sauce"},
		{"French Fries", 599, "Sides", "Crispy golden fries"},
		{"Mashed Potatoes", 599, "Sides", "Creamy garlic mashed"},
		{"Steamed Vegetables", 699, "Sides", "Seasonal mix"},
		{"Onion Rings", 799, "Sides", "Beer-battered, thick-cut"},
		{"Coleslaw", 499, "Sides", "Creamy house slaw"},
		{"Coca-Cola", 349, "Beverages", "Classic"},
		{"Iced Tea", 349, "Beverages", "Fresh brewed"},
		{"Craft Lager", 799, "Beverages", "Local draft"},
		{"House Red Wine", 999, "Beverages", "Glass of Cabernet"},
		{"Sparkling Water", 299, "Beverages", "500ml"},
		{"Vanilla Bean", 499, "Ice Cream", "Classic vanilla bean"},
		{"Chocolate Fudge", 549, "Ice Cream", "Rich chocolate with fudge swirls"},
		{"Strawberry Swirl", 549, "Ice Cream", "Fresh strawberry pieces"},
		{"Mint Chip", 549, "Ice Cream", "Mint ice cream with dark chocolate chips"},
		{"Cookie Dough", 599, "Ice Cream", "Generous chunks of cookie dough"},
		{"Original Tart", 599, "Frozen Yogurt", "Classic tart frozen yogurt"},
		{"Mango Tango", 649, "Frozen Yogurt", "Sweet mango flavor"},
		{"Berry Blast", 649, "Frozen Yogurt", "Mixed berry blend"},
		{"Tropical Twist", 649, "Frozen Yogurt", "Pineapple and coconut"},
	}

	fmt.Println("Seeding Menu Items...")
	ids := make(map[string]string, len(items))
	for _, item := range items {
		var id string
		err := db.QueryRow(`
			INSERT INTO menu_items (name, description, base_price, category_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET base_price = EXCLUDED.base_price, category_id = EXCLUDED.category_id
			RETURNING id;
		`, item.Name, item.Description, item.Price, categories[item.Category]).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed menu item %s: %v", item.Name, err)
		}
		ids[item.Name] = id
	}
	return ids
}

func seedPromotions(db *sql.DB, categories, items map[string]string) {
	fmt.Println("Seeding Promotions...")

	upsertPromotion(db, "$2 Off Garlic Bread", "FIXED", 200, 0, "ITEM", items["Garlic Bread"], "")
	upsertPromotion(db, "Happy Hour Drinks 15%", "PERCENT", 0, 1500, "CATEGORY", "", categories["Beverages"])

	duo := upsertPromotion(db, "Ice Cream Duo (2 for $8)", "COMBO", 800, 0, "CATEGORY", "", "")
	upsertRule(db, duo, 2, "", categories["Ice Cream"], false)

	lunch := upsertPromotion(db, "Lunch Special $15", "COMBO", 1500, 0, "ITEM", "", "")
	upsertRule(db, lunch, 1, items["Veggie Burger"], "", false)
	upsertRule(db, lunch, 1, items["French Fries"], "", true)
	upsertRule(db, lunch, 1, items["Coca-Cola"], "", true)
}

func upsertPromotion(db *sql.DB, name, kind string, value int64, percentBps int, scope, menuItemID, categoryID string) string {
	var existing string
	err := db.QueryRow(`SELECT id FROM promotions WHERE name = $1`, name).Scan(&existing)
	if err == nil {
		return existing
	}
	if err != sql.ErrNoRows {
		log.Fatalf("Failed to look up promotion %s: %v", name, err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO promotions (name, kind, value, percent_bps, scope, menu_item_id, category_id, active)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, NULLIF($7, '')::uuid, TRUE)
		RETURNING id;
	`, name, kind, value, percentBps, scope, menuItemID, categoryID).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to seed promotion %s: %v", name, err)
	}
	return id
}

func upsertRule(db *sql.DB, promotionID string, requiredQuantity int, menuItemID, categoryID string, discounted bool) {
	_, err := db.Exec(`
		INSERT INTO promotion_rules (promotion_id, required_quantity, menu_item_id, category_id, is_discounted)
		SELECT $1, $2, NULLIF($3, '')::uuid, NULLIF($4, '')::uuid, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM promotion_rules
			WHERE promotion_id = $1
			  AND required_quantity = $2
			  AND menu_item_id IS NOT DISTINCT FROM NULLIF($3, '')::uuid
			  AND category_id IS NOT DISTINCT FROM NULLIF($4, '')::uuid
		);
	`, promotionID, requiredQuantity, menuItemID, categoryID, discounted)
	if err != nil {
		log.Fatalf("Failed to seed promotion rule: %v", err)
	}
}
