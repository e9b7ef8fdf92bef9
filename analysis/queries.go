package analysis

const createViews = `
CREATE OR REPLACE VIEW quantity_sold AS
    SELECT product.product_name, SUM(sale.quantity) AS total_quantity
    FROM sale
    INNER JOIN product
    ON sale.product_key = product.product_key
    GROUP BY product.product_name
    ORDER BY SUM(quantity) DESC;

CREATE OR REPLACE VIEW unit_profit AS
    SELECT product.product_name, product.price - product.cost AS unit_profit
    FROM product
    ORDER BY product.price - product.cost DESC;
`

const topProductsByQuantity = `
SELECT product_name, total_quantity
FROM quantity_sold
ORDER BY total_quantity DESC, product_name;
`

const topProductsByProfit = `
SELECT quantity_sold.product_name, unit_profit.unit_profit * quantity_sold.total_quantity AS total_profit
FROM quantity_sold
INNER JOIN unit_profit
ON quantity_sold.product_name = unit_profit.product_name
ORDER BY unit_profit.unit_profit * quantity_sold.total_quantity DESC, quantity_sold.product_name;
`

const topSpendingCustomers = `
SELECT customer.firstname, customer.lastname, customer.income, SUM(product.price * sale.quantity) AS total_spent
FROM sale
JOIN customer
ON sale.customer_key = customer.customer_key
JOIN product
ON sale.product_key = product.product_key
GROUP BY customer.firstname, customer.lastname, customer.income
ORDER BY total_spent DESC, customer.lastname, customer.firstname;
`

const monthlyRegionalProfit = `
SELECT date_trunc('month', sale.orderdate)::date AS month,
       territory.region,
       SUM((product.price - product.cost) * sale.quantity) AS profit
FROM sale
JOIN product
ON sale.product_key = product.product_key
JOIN territory
ON sale.territory_key = territory.territory_key
GROUP BY 1, 2
ORDER BY 1, 2;
`

// RANK() даёт равный ранг связям и пропускает следующие позиции
const rankProductsByQuantity = `
WITH totals AS (
    SELECT category.category_name, product.product_name, SUM(sale.quantity) AS total_quantity
    FROM sale
    JOIN product ON sale.product_key = product.product_key
    JOIN subcategory ON product.subcategory_key = subcategory.subcategory_key
    JOIN category ON subcategory.category_key = category.category_key
    GROUP BY category.category_name, product.product_name
), ranked AS (
    SELECT category_name, product_name, total_quantity,
           RANK() OVER (PARTITION BY category_name ORDER BY total_quantity DESC) AS rank
    FROM totals
)
SELECT category_name, product_name, total_quantity, rank
FROM ranked
WHERE $1 <= 0 OR rank <= $1
ORDER BY category_name, rank, product_name;
`

const rankRegionsByMonthlyProfit = `
WITH monthly AS (
    SELECT date_trunc('month', sale.orderdate)::date AS month,
           territory.region,
           SUM((product.price - product.cost) * sale.quantity) AS profit
    FROM sale
    JOIN product ON sale.product_key = product.product_key
    JOIN territory ON sale.territory_key = territory.territory_key
    GROUP BY 1, 2
)
SELECT month, region, profit,
       RANK() OVER (PARTITION BY month ORDER BY profit DESC) AS rank
FROM monthly
ORDER BY month, rank, region;
`

const returnRates = `
WITH sold AS (
    SELECT product_key, SUM(quantity) AS total_sold
    FROM sale
    GROUP BY product_key
), returned AS (
    SELECT product_key, SUM(returnquantity) AS total_returned
    FROM "return"
    GROUP BY product_key
)
SELECT product.product_name,
       sold.total_sold,
       COALESCE(returned.total_returned, 0) AS total_returned,
       ROUND(COALESCE(returned.total_returned, 0)::numeric / sold.total_sold, 4)::float8 AS return_rate
FROM sold
JOIN product ON sold.product_key = product.product_key
LEFT JOIN returned ON sold.product_key = returned.product_key
WHERE sold.total_sold > 0
ORDER BY return_rate DESC, product.product_name;
`
