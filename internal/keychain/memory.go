package keychain

import (
	"sort"
	"sync"
)

// Op names a native call that MemoryClient can be told to fail.
type Op string

const (
	OpDefaultKeychain Op = "SecKeychainCopyDomainDefault"
	OpFind            Op = "SecKeychainFindGenericPassword"
	OpAdd             Op = "SecKeychainAddGenericPassword"
	OpModify          Op = "SecKeychainItemModifyAttributesAndData"
	OpDelete          Op = "SecKeychainItemDelete"
)

type itemKey struct {
	service string
	account string
}

// MemoryClient is an in-memory implementation of Client for testing. Each
// domain has its own keychain; items never cross domains.
type MemoryClient struct {
	mu       sync.RWMutex
	items    map[Domain]map[itemKey][]byte
	failures map[Op]Status
	domains  map[Domain]Status
	calls    int
	open     int
}

// NewMemoryClient creates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		items:    make(map[Domain]map[itemKey][]byte),
		failures: make(map[Op]Status),
		domains:  make(map[Domain]Status),
	}
}

// Fail makes every subsequent op call return status.
func (c *MemoryClient) Fail(op Op, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[op] = status
}

// FailDomain makes DefaultKeychain(domain) return status.
func (c *MemoryClient) FailDomain(domain Domain, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains[domain] = status
}

// Put stores raw bytes directly, the way a third-party writer would.
func (c *MemoryClient) Put(domain Domain, service, account string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(domain)[itemKey{service, account}] = append([]byte(nil), data...)
}

// Calls returns how many native calls were made, including failed ones.
func (c *MemoryClient) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

// OpenHandles returns how many keychain and item references are not closed.
func (c *MemoryClient) OpenHandles() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// Accounts lists the accounts stored for service in domain, sorted.
func (c *MemoryClient) Accounts(domain Domain, service string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var accounts []string
	for k := range c.items[domain] {
		if k.service == service {
			accounts = append(accounts, k.account)
		}
	}
	sort.Strings(accounts)
	return accounts
}

func (c *MemoryClient) DefaultKeychain(domain Domain) (Keychain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpDefaultKeychain); err != nil {
		return nil, err
	}
	if status, ok := c.domains[domain]; ok {
		return nil, newStatusError(string(OpDefaultKeychain), status)
	}
	c.open++
	return &memoryKeychain{client: c, domain: domain}, nil
}

// call records a native call and returns the injected failure for op, if any.
// c.mu must be held.
func (c *MemoryClient) call(op Op) error {
	c.calls++
	if status, ok := c.failures[op]; ok {
		return newStatusError(string(op), status)
	}
	return nil
}

func (c *MemoryClient) store(domain Domain) map[itemKey][]byte {
	m, ok := c.items[domain]
	if !ok {
		m = make(map[itemKey][]byte)
		c.items[domain] = m
	}
	return m
}

type memoryKeychain struct {
	client *MemoryClient
	domain Domain
	closed bool
}

func (k *memoryKeychain) SetGenericPassword(service, account string, data []byte) error {
	c := k.client
	c.mu.Lock()
	defer c.mu.Unlock()

	key := itemKey{service, account}
	if _, exists := c.store(k.domain)[key]; exists {
		if err := c.call(OpModify); err != nil {
			return err
		}
	} else if err := c.call(OpAdd); err != nil {
		return err
	}
	c.store(k.domain)[key] = append([]byte(nil), data...)
	return nil
}

func (k *memoryKeychain) FindGenericPassword(service, account string) ([]byte, Item, error) {
	c := k.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.call(OpFind); err != nil {
		return nil, nil, err
	}
	key := itemKey{service, account}
	data, ok := c.store(k.domain)[key]
	if !ok {
		return nil, nil, newStatusError(string(OpFind), StatusItemNotFound)
	}
	c.open++
	return append([]byte(nil), data...), &memoryItem{keychain: k, key: key}, nil
}

func (k *memoryKeychain) Close() {
	k.client.release(&k.closed)
}

func (c *MemoryClient) release(closed *bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !*closed {
		*closed = true
		c.open--
	}
}

type memoryItem struct {
	keychain *memoryKeychain
	key      itemKey
	closed   bool
}

func (i *memoryItem) Delete() error {
	c := i.keychain.client
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call(OpDelete); err != nil {
		return err
	}
	delete(c.store(i.keychain.domain), i.key)
	return nil
}

func (i *memoryItem) Close() {
	i.keychain.client.release(&i.closed)
}
