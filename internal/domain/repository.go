package domain

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента. Возвращает ErrEmailExists при
	// занятом email и ErrDuplicateID при занятом идентификаторе.
	Create(customer Customer) error
	// CreateMany сохраняет пакет клиентов атомарно: либо записаны все,
	// либо ни один. Используется режимом fail-fast пакетного создания.
	CreateMany(customers []Customer) error
	// Get возвращает клиента по идентификатору или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// EmailExists проверяет занятость email в канонической форме
	// (нижний регистр, без пробелов).
	EmailExists(email string) (bool, error)
	// List возвращает клиентов, проходящих фильтр, в порядке создания.
	List(filter CustomerFilter) ([]Customer, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// GetMany возвращает найденные товары по ключу идентификатора;
	// отсутствующие идентификаторы просто не попадают в результат.
	GetMany(ids []string) (map[string]Product, error)
	// List возвращает товары, проходящие фильтр, в порядке создания.
	List(filter ProductFilter) ([]Product, error)
	// RestockBelow атомарно добавляет amount единиц каждому товару с
	// остатком ниже threshold и возвращает обновлённые товары.
	RestockBelow(threshold, amount int) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе со связями заказ—товар как единое
	// целое: при любой ошибке не остаётся частичной записи.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы, проходящие фильтр, сначала новые.
	List(filter OrderFilter) ([]Order, error)
}
