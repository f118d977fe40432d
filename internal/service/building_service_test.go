package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"freeark_web/internal/building"
	"freeark_web/internal/model"

	"github.com/xuri/excelize/v2"
)

type fakeOwnerRepo struct {
	existing   map[string]struct{}
	created    []model.Owner
	placements []model.Owner
	findErr    error
	createErr  error
}

func (f *fakeOwnerRepo) FindExistingMACs(macs []string) (map[string]struct{}, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := map[string]struct{}{}
	for _, m := range macs {
		if _, ok := f.existing[m]; ok {
			out[m] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeOwnerRepo) CreateBatch(owners []model.Owner) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, owners...)
	return nil
}

func (f *fakeOwnerRepo) FindPlacements() ([]model.Owner, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.placements, nil
}

func (f *fakeOwnerRepo) Count() (int64, error) {
	return int64(len(f.placements)), nil
}

type fakeTreeCache struct {
	res         *building.Result
	getErr      error
	sets        int
	invalidated int
}

func (f *fakeTreeCache) Get(context.Context) (*building.Result, error) {
	return f.res, f.getErr
}

func (f *fakeTreeCache) Set(_ context.Context, res *building.Result) error {
	f.sets++
	f.res = res
	return nil
}

func (f *fakeTreeCache) Invalidate(context.Context) error {
	f.invalidated++
	f.res = nil
	return nil
}

func newBuilder(t *testing.T) *building.Builder {
	t.Helper()
	b, err := building.NewBuilder(building.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestBuildingService_GetTree_BuildsAndCaches(t *testing.T) {
	repo := &fakeOwnerRepo{placements: []model.Owner{
		{Building: "2栋", Unit: "1单元", Room: "101"},
		{Building: "1栋", Unit: "1单元", Room: "201"},
		{Building: "1栋", Unit: "1单元", Room: "201"},
		{Building: "", Unit: "1单元", Room: "301"},
	}}
	cache := &fakeTreeCache{}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", cache)

	res, err := svc.GetTree(context.Background())
	if err != nil {
		t.Fatalf("GetTree() error = %v", err)
	}
	if res.Buildings != 2 || res.Leaves != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Tree[0].Value != "1" || res.Tree[1].Value != "2" {
		t.Fatalf("buildings not sorted: %s, %s", res.Tree[0].Value, res.Tree[1].Value)
	}
	if cache.sets != 1 {
		t.Fatalf("expect tree to be cached once, got %d", cache.sets)
	}

	// 第二次命中缓存，不再访问数据库
	repo.findErr = errors.New("should not be called")
	again, err := svc.GetTree(context.Background())
	if err != nil || again != res {
		t.Fatalf("expect cached result, got %v, %v", again, err)
	}
}

func TestBuildingService_GetTree_CacheErrorFallsBack(t *testing.T) {
	repo := &fakeOwnerRepo{placements: []model.Owner{{Building: "1栋", Unit: "1单元", Room: "101"}}}
	cache := &fakeTreeCache{getErr: errors.New("redis down")}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", cache)

	res, err := svc.GetTree(context.Background())
	if err != nil {
		t.Fatalf("GetTree() error = %v", err)
	}
	if res.Leaves != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBuildingService_GetTree_Empty(t *testing.T) {
	svc := NewBuildingService(&fakeOwnerRepo{}, newBuilder(t), building.DefaultFields(), "", nil)

	res, err := svc.GetTree(context.Background())
	if err != nil {
		t.Fatalf("GetTree() error = %v", err)
	}
	if res.Tree == nil || len(res.Tree) != 0 {
		t.Fatalf("expect empty non-nil tree, got %#v", res.Tree)
	}
}

func TestBuildingService_GetTree_DBError(t *testing.T) {
	repo := &fakeOwnerRepo{findErr: errors.New("db down")}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", nil)

	if _, err := svc.GetTree(context.Background()); !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal, got %v", err)
	}
}

func TestBuildingService_ImportOwners(t *testing.T) {
	repo := &fakeOwnerRepo{existing: map[string]struct{}{"OLD": {}}}
	cache := &fakeTreeCache{res: &building.Result{}}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", cache)

	records := []building.Record{
		{Key: "1-1-201", Building: "1栋", Unit: "1单元", Room: "201", ScreenMAC: "AA"},
		{Key: "1-1-202", Building: "1栋", Unit: "1单元", Room: "202", ScreenMAC: ""},
		{Key: "1-1-203", Building: "1栋", Unit: "1单元", Room: "203", ScreenMAC: "OLD"},
		{Key: "1-1-204", Building: "1栋", Unit: "1单元", Room: "204", ScreenMAC: "AA"},
		{Key: "1-2-101", Building: "1栋", Unit: "2单元", Room: "101", ScreenMAC: " BB "},
	}
	sum, err := svc.ImportOwners(context.Background(), records)
	if err != nil {
		t.Fatalf("ImportOwners() error = %v", err)
	}
	if sum.Total != 5 || sum.Imported != 2 || sum.Skipped != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(repo.created) != 2 || repo.created[0].SpecificPart != "1-1-201" || repo.created[1].ScreenMAC != "BB" {
		t.Fatalf("unexpected inserted owners: %+v", repo.created)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expect cache invalidated once, got %d", cache.invalidated)
	}
}

func TestBuildingService_ImportOwners_NothingNew(t *testing.T) {
	repo := &fakeOwnerRepo{existing: map[string]struct{}{"AA": {}}}
	cache := &fakeTreeCache{}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", cache)

	sum, err := svc.ImportOwners(context.Background(), []building.Record{{ScreenMAC: "AA"}})
	if err != nil {
		t.Fatalf("ImportOwners() error = %v", err)
	}
	if sum.Imported != 0 || sum.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if cache.invalidated != 0 {
		t.Fatalf("cache should stay valid when nothing was imported")
	}
}

func TestBuildingService_ImportOwners_DBError(t *testing.T) {
	repo := &fakeOwnerRepo{createErr: errors.New("deadlock")}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", nil)

	_, err := svc.ImportOwners(context.Background(), []building.Record{{ScreenMAC: "AA"}})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal, got %v", err)
	}
}

func TestBuildingService_ImportFile_JSON(t *testing.T) {
	repo := &fakeOwnerRepo{}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", nil)

	body := `{"1-1-201":{"楼栋":"1栋","单元":"1单元","户号":"201","唯一标识符":"AA"},
	          "1-1-202":{"楼栋":"1栋","单元":"1单元","户号":"202"}}`
	sum, err := svc.ImportFile(context.Background(), "all_owner.JSON", strings.NewReader(body))
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if sum.Total != 2 || sum.Imported != 1 || sum.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if repo.created[0].SpecificPart != "1-1-201" || repo.created[0].Room != "201" {
		t.Fatalf("unexpected owner: %+v", repo.created[0])
	}
}

func TestBuildingService_ImportFile_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"楼栋", "单元", "户号", "唯一标识符"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{"3栋", "2单元", "1502", "CC"})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	repo := &fakeOwnerRepo{}
	svc := NewBuildingService(repo, newBuilder(t), building.DefaultFields(), "", nil)

	sum, err := svc.ImportFile(context.Background(), "owners.xlsx", &buf)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if sum.Imported != 1 || repo.created[0].Building != "3栋" || repo.created[0].ScreenMAC != "CC" {
		t.Fatalf("unexpected import: %+v %+v", sum, repo.created)
	}
}

func TestBuildingService_ImportFile_Errors(t *testing.T) {
	svc := NewBuildingService(&fakeOwnerRepo{}, newBuilder(t), building.DefaultFields(), "", nil)

	if _, err := svc.ImportFile(context.Background(), "owners.csv", strings.NewReader("")); !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expect ErrUnsupportedSource, got %v", err)
	}
	if _, err := svc.ImportFile(context.Background(), "owners.json", strings.NewReader("{broken")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput, got %v", err)
	}
}
