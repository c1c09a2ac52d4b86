package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repositories backing the service tests. They mimic the lookup
// and not-found semantics of the real GORM repositories; row locking is a
// no-op since each test runs single-threaded.

type memProductRepo struct {
	products []*model.Product
}

func (r *memProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	r.products = append(r.products, product)
	return nil
}

func (r *memProductRepo) FindAll(filters repository.ProductFilters) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(p.Name), needle) &&
				!strings.Contains(strings.ToLower(p.SKU), needle) {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProductRepo) FindBySKUForUpdate(sku string) (*model.Product, error) {
	return r.FindBySKU(sku)
}

func (r *memProductRepo) FindByIDForUpdate(id uuid.UUID) (*model.Product, error) {
	return r.FindByID(id)
}

func (r *memProductRepo) Update(product *model.Product) error {
	for i, p := range r.products {
		if p.ID == product.ID {
			cp := *product
			r.products[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memProductRepo) Delete(id uuid.UUID) error {
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memProductRepo) Exists(id uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type memStockTransactionRepo struct {
	entries []model.StockTransaction
}

func (r *memStockTransactionRepo) Create(entry *model.StockTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memStockTransactionRepo) CreateBatch(entries []model.StockTransaction) error {
	for i := range entries {
		if err := r.Create(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memStockTransactionRepo) GetCurrentStock(productID uuid.UUID) (int, error) {
	total := 0
	for _, e := range r.entries {
		if e.ProductID == productID {
			total += e.Quantity
		}
	}
	return total, nil
}

func (r *memStockTransactionRepo) GetCurrentStockBatch(productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	stocks := make(map[uuid.UUID]int, len(productIDs))
	for _, id := range productIDs {
		total, _ := r.GetCurrentStock(id)
		stocks[id] = total
	}
	return stocks, nil
}

func (r *memStockTransactionRepo) FindByProductID(productID uuid.UUID) ([]model.StockTransaction, error) {
	var out []model.StockTransaction
	for _, e := range r.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memStockTransactionRepo) FindBySaleID(saleID uuid.UUID) ([]model.StockTransaction, error) {
	var out []model.StockTransaction
	for _, e := range r.entries {
		if e.SaleID != nil && *e.SaleID == saleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memStockTransactionRepo) FindByDateRange(start, end time.Time) ([]model.StockTransaction, error) {
	var out []model.StockTransaction
	for _, e := range r.entries {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memStockTransactionRepo) ExistsByProductID(productID uuid.UUID) (bool, error) {
	for _, e := range r.entries {
		if e.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStockTransactionRepo) GetStockMovement(start, end time.Time) ([]repository.StockMovementData, error) {
	byDate := map[string]*repository.StockMovementData{}
	for _, e := range r.entries {
		if e.CreatedAt.Before(start) || e.CreatedAt.After(end) {
			continue
		}
		date := e.CreatedAt.Format("2006-01-02")
		d, ok := byDate[date]
		if !ok {
			d = &repository.StockMovementData{Date: date}
			byDate[date] = d
		}
		if e.Quantity > 0 {
			d.Inbound += e.Quantity
		} else {
			d.Outbound += -e.Quantity
		}
	}
	var out []repository.StockMovementData
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type memSaleRepo struct {
	sales []*model.Sale
}

func (r *memSaleRepo) Create(sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	r.sales = append(r.sales, sale)
	return nil
}

func (r *memSaleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSaleRepo) FindByIDForUpdate(id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(id)
}

func (r *memSaleRepo) FindBySaleNumber(saleNumber string) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.SaleNumber == saleNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSaleRepo) FindAll(filters repository.SaleFilters) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters.UserID != nil && s.UserID != *filters.UserID {
			continue
		}
		if filters.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *filters.CustomerID) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSaleRepo) Update(sale *model.Sale) error {
	for i, s := range r.sales {
		if s.ID == sale.ID {
			cp := *sale
			r.sales[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memSaleRepo) Cancel(id uuid.UUID) error {
	for _, s := range r.sales {
		if s.ID == id {
			s.Status = model.SaleCancelled
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memSaleRepo) GenerateSaleNumber(day time.Time) (string, error) {
	prefix := "V" + day.Format("20060102")
	max := 0
	for _, s := range r.sales {
		if strings.HasPrefix(s.SaleNumber, prefix+"-") {
			seq, err := strconv.Atoi(strings.TrimPrefix(s.SaleNumber, prefix+"-"))
			if err == nil && seq > max {
				max = seq
			}
		}
	}
	return prefix + "-" + padSeq(max+1), nil
}

func padSeq(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func (r *memSaleRepo) GetTodayStats(now time.Time) (*repository.SaleStats, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.GetDateRangeStats(start, now.Add(time.Second))
}

func (r *memSaleRepo) GetDateRangeStats(start, end time.Time) (*repository.SaleStats, error) {
	stats := &repository.SaleStats{ByPaymentMethod: map[string]int64{}}
	for _, s := range r.sales {
		if s.Status != model.SaleCompleted {
			continue
		}
		if s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		stats.TotalAmount += s.TotalAmount
		stats.TotalSales++
		stats.ByPaymentMethod[string(s.PaymentMethod)] += s.TotalAmount
	}
	if stats.TotalSales > 0 {
		stats.AverageTicket = stats.TotalAmount / stats.TotalSales
	}
	return stats, nil
}

type memSaleItemRepo struct {
	items []model.SaleItem
}

func (r *memSaleItemRepo) CreateBatch(items []model.SaleItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].CreatedAt = time.Now()
		r.items = append(r.items, items[i])
	}
	return nil
}

func (r *memSaleItemRepo) FindBySaleID(saleID uuid.UUID) ([]model.SaleItem, error) {
	var out []model.SaleItem
	for _, it := range r.items {
		if it.SaleID == saleID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *memSaleItemRepo) DeleteBySaleID(saleID uuid.UUID) error {
	kept := r.items[:0]
	for _, it := range r.items {
		if it.SaleID != saleID {
			kept = append(kept, it)
		}
	}
	r.items = kept
	return nil
}

func (r *memSaleItemRepo) ExistsByProductID(productID uuid.UUID) (bool, error) {
	for _, it := range r.items {
		if it.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

type memCustomerRepo struct {
	customers []*model.Customer
}

func (r *memCustomerRepo) Create(customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers = append(r.customers, customer)
	return nil
}

func (r *memCustomerRepo) FindAll() ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memCustomerRepo) FindByID(id uuid.UUID) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) FindByIDForUpdate(id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(id)
}

func (r *memCustomerRepo) Update(customer *model.Customer) error {
	for i, c := range r.customers {
		if c.ID == customer.ID {
			cp := *customer
			r.customers[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) Delete(id uuid.UUID) error {
	for i, c := range r.customers {
		if c.ID == id {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) AddDebt(id uuid.UUID, delta int64) error {
	for _, c := range r.customers {
		if c.ID == id {
			c.CurrentDebt += delta
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memUserRepo struct {
	users []*model.User
}

func (r *memUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, user)
	return nil
}

func (r *memUserRepo) Update(user *model.User) error {
	for i, u := range r.users {
		if u.ID == user.ID {
			cp := *user
			r.users[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.Password = hashedPassword
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindAll() ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type memConversationRepo struct {
	conversations []*model.Conversation
}

func (r *memConversationRepo) Create(conversation *model.Conversation) error {
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	r.conversations = append(r.conversations, conversation)
	return nil
}

func (r *memConversationRepo) FindByID(id uuid.UUID) (*model.Conversation, error) {
	for _, c := range r.conversations {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memConversationRepo) FindByUserID(userID uuid.UUID) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memConversationRepo) Exists(id uuid.UUID) (bool, error) {
	for _, c := range r.conversations {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memConversationRepo) Delete(id uuid.UUID) error {
	for i, c := range r.conversations {
		if c.ID == id {
			r.conversations = append(r.conversations[:i], r.conversations[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memMessageRepo struct {
	messages []model.Message
}

func (r *memMessageRepo) Create(message *model.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *memMessageRepo) FindByConversationID(conversationID uuid.UUID) ([]model.Message, error) {
	var out []model.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) LastMessages(conversationID uuid.UUID, n int) ([]model.Message, error) {
	all, _ := r.FindByConversationID(conversationID)
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// memTxManager runs the workflow against the shared bundle without real
// transaction semantics. Workflows under test validate before writing, so
// failure paths leave no writes even without rollback.
type memTxManager struct {
	repos *repository.Repos
}

func (m *memTxManager) Do(ctx context.Context, fn func(r *repository.Repos) error) error {
	return fn(m.repos)
}

// testEnv bundles the in-memory world a service test runs against.
type testEnv struct {
	products  *memProductRepo
	ledger    *memStockTransactionRepo
	sales     *memSaleRepo
	saleItems *memSaleItemRepo
	customers *memCustomerRepo
	users     *memUserRepo
	repos     *repository.Repos
	tm        repository.TxManager
}

func newTestEnv() *testEnv {
	env := &testEnv{
		products:  &memProductRepo{},
		ledger:    &memStockTransactionRepo{},
		sales:     &memSaleRepo{},
		saleItems: &memSaleItemRepo{},
		customers: &memCustomerRepo{},
		users:     &memUserRepo{},
	}
	env.repos = &repository.Repos{
		Products:          env.products,
		Customers:         env.customers,
		Sales:             env.sales,
		SaleItems:         env.saleItems,
		StockTransactions: env.ledger,
		Users:             env.users,
	}
	env.tm = &memTxManager{repos: env.repos}
	return env
}

// seedProduct registers a product and optionally posts an opening stock
// purchase so the ledger fold starts from the given quantity.
func (env *testEnv) seedProduct(sku, name string, price int64, stock int) *model.Product {
	product := &model.Product{
		SKU:          sku,
		Name:         name,
		Category:     "general",
		Unit:         model.UnitPiece,
		UnitPrice:    price,
		ReorderPoint: 10,
	}
	_ = env.products.Create(product)
	if stock > 0 {
		_ = env.ledger.Create(&model.StockTransaction{
			ProductID: product.ID,
			Type:      model.TxPurchase,
			Quantity:  stock,
			Reason:    "Opening stock",
			UserID:    uuid.New(),
		})
	}
	return product
}
