package redisstore

// Key layout shared with existing deployments. Older deployments kept
// podsKey as a list; UpgradeLegacy converts it to the set used here.
const (
	podsKey = "global:pods"

	fieldQuantity = "Quantity"
	fieldExpire   = "Expire"
	fieldName     = "Name"
	fieldArg      = "Arg"
)

func storageListKey(pod string) string { return pod + ":storage_list" }

func itemListKey(pod, storage string) string { return pod + ":" + storage + ":item_list" }

func itemKey(pod, storage, item string) string { return pod + ":" + storage + ":" + item }

func dialogKey(pod string) string { return pod + ":global_command" }
