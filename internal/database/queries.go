package database

// Project queries
const (
	GetProjectSQL = `
		SELECT id, name, created_at
		FROM projects WHERE id = $1`
)

// Task queries
const (
	InsertTaskSQL = `
		INSERT INTO project_tasks (project_id, name, description, date_deadline, partner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	ListProjectTasksSQL = `
		SELECT id, project_id, name, description, date_deadline, partner_id, created_at
		FROM project_tasks
		WHERE project_id = $1
		ORDER BY id ASC`

	LinkOrderTaskSQL = `
		INSERT INTO order_task_links (order_id, task_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
)

// Point of sale order queries
const (
	GetPosOrderSQL = `
		SELECT id, name, table_name, server_name, customer_id, customer_name,
			   note, project_id, amount_total, created_at
		FROM pos_orders WHERE id = $1`

	GetPosOrderLinesSQL = `
		SELECT id, order_id, product_id, product_name, qty, price_unit, note
		FROM pos_order_lines
		WHERE order_id = $1
		ORDER BY id ASC`
)
