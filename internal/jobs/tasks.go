package jobs

import (
	"context"
	"fmt"
	"strconv"
)

// Имена задач; используются и как label в метриках.
const (
	JobHeartbeat      = "heartbeat"
	JobLowStock       = "low-stock"
	JobOrderReminders = "order-reminders"
	JobReport         = "report"
)

const heartbeatTimeLayout = "02/01/2006-15:04:05"

// Heartbeat пишет строку жизни CRM и опционально пингует API.
// Формат строки исторический: "DD/MM/YYYY-HH:MM:SS CRM is alive".
func Heartbeat(client *Client, logbook *Logbook) Task {
	return func(ctx context.Context) error {
		line := logbook.Now().Format(heartbeatTimeLayout) + " CRM is alive"
		if err := logbook.AppendRaw(line); err != nil {
			return err
		}

		if client == nil {
			return nil
		}
		if err := client.Hello(ctx); err != nil {
			return fmt.Errorf("hello ping: %w", err)
		}
		return nil
	}
}

// LowStockRestock вызывает updateLowStockProducts и пишет по строке на
// каждый пополненный товар.
func LowStockRestock(client *Client, logbook *Logbook) Task {
	return func(ctx context.Context) error {
		updated, err := client.UpdateLowStock(ctx)
		if err != nil {
			return err
		}

		for _, product := range updated {
			message := fmt.Sprintf("%s restocked to %d", product.Name, product.Stock)
			if err := logbook.Append(message); err != nil {
				return err
			}
		}

		return nil
	}
}

// OrderReminders пишет напоминание по каждому заказу недельного окна.
func OrderReminders(client *Client, logbook *Logbook) Task {
	return func(ctx context.Context) error {
		reminders, err := client.RecentOrders(ctx)
		if err != nil {
			return err
		}

		for _, reminder := range reminders {
			message := fmt.Sprintf("Order %s reminder for %s", reminder.OrderID, reminder.Email)
			if err := logbook.Append(message); err != nil {
				return err
			}
		}

		return nil
	}
}

// Report пишет сводную строку по клиентам, заказам и выручке.
func Report(client *Client, logbook *Logbook) Task {
	return func(ctx context.Context) error {
		totals, err := client.ReportTotals(ctx)
		if err != nil {
			return err
		}

		message := fmt.Sprintf(
			"Report: %d customers, %d orders, %s revenue",
			totals.Customers,
			totals.Orders,
			strconv.FormatFloat(totals.Revenue, 'f', -1, 64),
		)
		return logbook.Append(message)
	}
}
